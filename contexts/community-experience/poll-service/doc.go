// Package pollservice implements polls inside the community-experience
// context.
//
// The module owns poll authoring, time-derived open/closed state, and vote
// recording with at-most-one-vote-per-user semantics. The (poll, user)
// uniqueness guarantee is pushed down to the repository's constraint system;
// tallies are always recomputed from the committed vote set, never stored.
package pollservice
