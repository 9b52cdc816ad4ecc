/*
Package replica assembles one member's slot in a replication group: the
group roster, the member's own causal clock and its named registers and
sequences.

The assembly is purely local. Local mutators advance the clock, apply the
change to the local instance and hand back a wire message for the excluded
transport layer to deliver; Apply is the entry point that same layer
invokes for received messages. The replica performs no I/O, owns no
goroutines and takes no locks; callers serialize access externally.

Instances are created lazily on first use, on local mutation as well as on
remote delivery, so replicas need no coordination about which named
registers and sequences exist.
*/
package replica
