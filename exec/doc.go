// Package exec implements the execution collaborator: it resolves an
// agent's model, drives the model/tool exchange for one invocation, and
// appends the exchange to the checkpoint store. It is the only component
// that writes checkpoint content.
package exec
