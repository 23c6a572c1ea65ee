// Package core holds the ownership state machine, its permission guards and
// query projection, and the Service that persists one namespace slot through
// a StateStore. Storage, transport and logging backends live in sibling
// packages and depend on core, never the other way around.
package core
