// Package platform defines the types and interfaces at the chat-platform
// boundary: inbound gateway events, interactions, members and their
// permissions, and the outbound Session surface handlers reply through.
// It abstracts away the details of a real gateway connection vs. the
// in-process one used for development and tests.
package platform
