package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/runr/internal/script"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// HCL script documents express the same schema as the data serializations,
// with blocks instead of nested mappings. Block order carries step order.
// The command template lives in the run attribute: HCL block labels are
// plain string literals and cannot hold ${name} interpolations.
//
//	name   = "deploy"
//	params = ["environment"]
//
//	secret "api_token" { env_var = "API_TOKEN" }
//
//	command {
//	  run     = "echo deploying to ${environment}"
//	  capture = "banner"
//	  options {
//	    os       = "linux"
//	    delay_ms = 250
//	    fallback { run = "systemctl start docker" }
//	  }
//	}
//
//	parallel {
//	  command { run = "make lint" }
//	  command { run = "make test" }
//	}

var scriptSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "name", Required: true},
		{Name: "description"},
		{Name: "params"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "secret", LabelNames: []string{"name"}},
		{Type: "command"},
		{Type: "parallel"},
	},
}

var groupSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "command"},
		{Type: "parallel"},
	},
}

var commandSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "run", Required: true},
		{Name: "description"},
		{Name: "capture"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "options"},
	},
}

var optionsSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "interactive"},
		{Name: "os"},
		{Name: "proceed_on_failure"},
		{Name: "delay_ms"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "fallback"},
	},
}

// fallbackSchema is commandSchema without the options block: fallback
// commands carry no policy of their own.
var fallbackSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "run", Required: true},
		{Name: "description"},
		{Name: "capture"},
	},
}

var secretSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "env_var", Required: true},
	},
}

func decodeHCL(path string, data []byte) (*script.Script, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, diags
	}

	content, diags := file.Body.Content(scriptSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	sc := &script.Script{}
	var err error
	if sc.Name, err = attrString(content.Attributes, "name"); err != nil {
		return nil, err
	}
	if sc.Description, err = attrString(content.Attributes, "description"); err != nil {
		return nil, err
	}
	if sc.Params, err = attrStringList(content.Attributes, "params"); err != nil {
		return nil, err
	}

	// Content preserves source order across block types, which is what makes
	// interleaved command and parallel blocks come out as the user wrote them.
	for _, block := range content.Blocks {
		switch block.Type {
		case "secret":
			secret, err := decodeSecretBlock(block)
			if err != nil {
				return nil, err
			}
			sc.Secrets = append(sc.Secrets, secret)
		case "command":
			cmd, err := decodeCommandBlock(block)
			if err != nil {
				return nil, err
			}
			sc.Commands = append(sc.Commands, script.Step{Single: cmd})
		case "parallel":
			group, err := decodeGroupBody(block.Body)
			if err != nil {
				return nil, err
			}
			sc.Commands = append(sc.Commands, script.Step{Group: group})
		}
	}
	return sc, nil
}

func decodeGroupBody(body hcl.Body) ([]script.Step, error) {
	content, diags := body.Content(groupSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	var steps []script.Step
	for _, block := range content.Blocks {
		switch block.Type {
		case "command":
			cmd, err := decodeCommandBlock(block)
			if err != nil {
				return nil, err
			}
			steps = append(steps, script.Step{Single: cmd})
		case "parallel":
			group, err := decodeGroupBody(block.Body)
			if err != nil {
				return nil, err
			}
			steps = append(steps, script.Step{Group: group})
		}
	}
	return steps, nil
}

func decodeSecretBlock(block *hcl.Block) (script.Secret, error) {
	content, diags := block.Body.Content(secretSchema)
	if diags.HasErrors() {
		return script.Secret{}, diags
	}
	envVar, err := attrString(content.Attributes, "env_var")
	if err != nil {
		return script.Secret{}, err
	}
	return script.Secret{Name: block.Labels[0], EnvVar: envVar}, nil
}

func decodeCommandBlock(block *hcl.Block) (*script.CommandSpec, error) {
	content, diags := block.Body.Content(commandSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	cmd := &script.CommandSpec{}
	var err error
	if cmd.Command, err = attrString(content.Attributes, "run"); err != nil {
		return nil, err
	}
	if cmd.Description, err = attrString(content.Attributes, "description"); err != nil {
		return nil, err
	}
	if cmd.Capture, err = attrString(content.Attributes, "capture"); err != nil {
		return nil, err
	}

	for _, optBlock := range content.Blocks {
		if err := decodeOptionsBody(optBlock.Body, &cmd.Options); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func decodeFallbackBlock(block *hcl.Block) (script.CommandSpec, error) {
	content, diags := block.Body.Content(fallbackSchema)
	if diags.HasErrors() {
		return script.CommandSpec{}, diags
	}

	fb := script.CommandSpec{}
	var err error
	if fb.Command, err = attrString(content.Attributes, "run"); err != nil {
		return script.CommandSpec{}, err
	}
	if fb.Description, err = attrString(content.Attributes, "description"); err != nil {
		return script.CommandSpec{}, err
	}
	if fb.Capture, err = attrString(content.Attributes, "capture"); err != nil {
		return script.CommandSpec{}, err
	}
	return fb, nil
}

func decodeOptionsBody(body hcl.Body, opts *script.Options) error {
	content, diags := body.Content(optionsSchema)
	if diags.HasErrors() {
		return diags
	}

	var err error
	if opts.Interactive, err = attrBool(content.Attributes, "interactive"); err != nil {
		return err
	}
	if opts.ProceedOnFailure, err = attrBool(content.Attributes, "proceed_on_failure"); err != nil {
		return err
	}
	osName, err := attrString(content.Attributes, "os")
	if err != nil {
		return err
	}
	opts.OS = script.OperatingSystem(osName)
	if opts.DelayMs, err = attrInt(content.Attributes, "delay_ms"); err != nil {
		return err
	}

	for _, fbBlock := range content.Blocks {
		fb, err := decodeFallbackBlock(fbBlock)
		if err != nil {
			return err
		}
		opts.Fallback = append(opts.Fallback, fb)
	}
	return nil
}

// --- cty attribute helpers ---

// templateContext lets ${name} interpolations in attribute values pass
// through verbatim: every variable the expression references evaluates to
// its own ${name} token, so substitution is deferred to run time.
func templateContext(expr hcl.Expression) *hcl.EvalContext {
	traversals := expr.Variables()
	if len(traversals) == 0 {
		return nil
	}
	variables := make(map[string]cty.Value, len(traversals))
	for _, traversal := range traversals {
		root := traversal.RootName()
		variables[root] = cty.StringVal("${" + root + "}")
	}
	return &hcl.EvalContext{Variables: variables}
}

func attrValue(attrs hcl.Attributes, name string, want cty.Type) (cty.Value, bool, error) {
	attr, ok := attrs[name]
	if !ok {
		return cty.NilVal, false, nil
	}
	val, diags := attr.Expr.Value(templateContext(attr.Expr))
	if diags.HasErrors() {
		return cty.NilVal, false, diags
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return cty.NilVal, false, fmt.Errorf("attribute %q: %w", name, err)
	}
	return converted, true, nil
}

func attrString(attrs hcl.Attributes, name string) (string, error) {
	val, ok, err := attrValue(attrs, name, cty.String)
	if err != nil || !ok {
		return "", err
	}
	return val.AsString(), nil
}

func attrBool(attrs hcl.Attributes, name string) (bool, error) {
	val, ok, err := attrValue(attrs, name, cty.Bool)
	if err != nil || !ok {
		return false, err
	}
	return val.True(), nil
}

func attrInt(attrs hcl.Attributes, name string) (int64, error) {
	val, ok, err := attrValue(attrs, name, cty.Number)
	if err != nil || !ok {
		return 0, err
	}
	var n int64
	if err := gocty.FromCtyValue(val, &n); err != nil {
		return 0, fmt.Errorf("attribute %q: %w", name, err)
	}
	return n, nil
}

func attrStringList(attrs hcl.Attributes, name string) ([]string, error) {
	val, ok, err := attrValue(attrs, name, cty.List(cty.String))
	if err != nil || !ok {
		return nil, err
	}
	var list []string
	for _, item := range val.AsValueSlice() {
		list = append(list, item.AsString())
	}
	return list, nil
}
