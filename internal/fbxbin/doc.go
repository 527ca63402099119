// Package fbxbin is a pull tokenizer for the binary FBX container.
//
// A Parser reads the file header on construction and then yields
// structural events through NextEvent: one StartNode per node record,
// carrying a lazy attribute source, one EndNode per closed node and a
// final EndStream once the top-level end marker and footer have been
// read. Attribute payloads are decoded only when the consumer asks for
// them; whatever it leaves unread is skipped before the next event.
//
// Recoverable oddities are reported through the warning handler and never
// stop the parse. Fatal problems are returned as *Error values that carry
// the stream position and wrap one of the sentinel errors below.
package fbxbin
