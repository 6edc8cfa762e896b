// Package feedservice owns the anonymous confessions feed and the shared
// notes catalog for the community experience group.
package feedservice
