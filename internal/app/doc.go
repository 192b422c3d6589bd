// Package app holds the form controller that sits between user input and the
// gym store.
//
// The controller owns two pieces of transient state: the snapshot last loaded
// from storage, and the form draft together with the record being edited (if
// any). Every successful mutation is followed by a full reload of the
// snapshot, and View maps that state to display data without side effects.
//
// A Controller is not safe for concurrent use. Front ends that accept
// concurrent input serialise calls themselves.
package app
