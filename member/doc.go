/*
Package member defines the identity model of a flotsync replication group:
an opaque fixed-size group identifier, hierarchical dotted member
identifiers, and the locally-assigned mapping from member identifiers to the
stable small-integer positions the causal clock indexes by.

Positions are assigned in the order members are admitted and remain stable
for the lifetime of the membership, so every vector clock entry keeps
pointing at the same member even as the group grows.
*/
package member
