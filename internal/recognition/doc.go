// Package recognition owns the state of one listening session.
//
// A Session reacts to commands from the user (toggle, start, stop) and to the
// callbacks of the speech engine it drives (start, result, error, end). All of
// it is serialized through a single actor goroutine, so the state needs no locks.
package recognition
