/*
Package wire defines the string-framed synchronization messages flotsync
replicas exchange. A message carries the sending member's identifier, the
replication group, the sender's causal clock and exactly one operation.

The causal clock travels in one of three physical encodings (full,
override, synced). The encoder always picks the most compact encoding that
represents the logical value; the decoder accepts all three
interchangeably, so peers never have to agree on an encoding up front.

Transport concerns such as connection handling, retries and delivery
ordering are outside this package: it only turns messages into
newline-terminated strings and back.
*/
package wire
