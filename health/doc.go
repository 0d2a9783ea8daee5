// Package health provides availability checks for the gateway's
// collaborators: the persistent store and the upstream completion provider.
package health
