/*
Package host evaluates node fragments in an embedded Lua interpreter.

A Host owns one interpreter state, one persistent namespace and one object store
for its whole lifetime. Each call builds a working environment from the call's
arguments layered over the namespace, evaluates the node's fragment in it, merges
the names the fragment bound back into the namespace and calls the entry function
with the arguments bound to its parameter names.

Lua tables, functions and userdata cross the Go boundary as references; scalars are
converted by value. Nothing a fragment binds is rolled back until ResetNamespace.

The host trusts the code it is given. It isolates only against accidental name
collisions between calls.
*/
package host
