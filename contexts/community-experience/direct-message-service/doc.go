// Package directmessage implements one-to-one messaging inside the
// community-experience context.
//
// The module owns conversation resolution (find-or-create of the unique
// thread for an unordered participant pair) and message append. Business
// rules live in the application layer; the participant-pair uniqueness
// guarantee is pushed down to the repository's constraint system so it
// holds across concurrent server instances.
package directmessage
