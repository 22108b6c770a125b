// Package saletiming derives decision-moment selling variables from the
// cumulative sold flag of the raw exports. The export marks a player as sold
// in every period from the sale onwards; analysis needs the single period in
// which the decision happened, the already-sold indicator for later periods,
// and the count of prior sales by other group members. The package also
// identifies first and second sellers per group-round and assigns ordinal
// selling ranks.
package saletiming
