// Package vars holds the variable store shared by a script run and the
// template resolver that renders command lines against it.
package vars
