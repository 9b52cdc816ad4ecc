/*
Package version implements the causal clock (version vector) that establishes
the happened-before relation between replica states in a flotsync group.

A logical clock is a mapping from member position to a monotonically
non-decreasing counter. Three physical encodings of that mapping exist to
keep wire messages small: a full counter list, an override form for groups
that are almost synced up except for a single member, and a synced form for
groups in which every member sits at exactly the same counter. All three are
semantically interchangeable: comparison and merging happen on one canonical
expansion, so two encodings of the same logical mapping always compare Equal.

Member positions that a vector does not know about are implicitly at counter
zero, which lets vectors of different membership sizes be compared and merged
when the group grows.
*/
package version
