// Package chatactivity parses the pre-segment chat exports and counts
// message activity per participant and group. Chat happens once before a
// segment begins, so counts are segment-level facts that downstream
// datasets replicate onto the player-period key space.
package chatactivity
