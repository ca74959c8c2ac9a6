// Package separator provides a breadth-first level-structure vertex
// separator, the default [nd.SeparatorOracle].
//
// # Algorithm
//
// [LevelSet] finds a pseudo-peripheral vertex by repeated breadth-first
// search, builds the level structure rooted there, and picks one level as the
// separator: the smallest level among those that leave both sides with at
// least a quarter of the non-separator vertices, or the best balanced level
// when none does. Separator vertices without a neighbor on the far side are
// moved to the near side, so every remaining separator vertex is needed.
//
// Graphs with fewer than three vertices, no edges or a level structure of
// depth one cannot be split this way; FindSeparator returns
// [nd.ErrPartitionFailed] for them and the engine orders them as leaves.
//
// Vertices the search does not reach (other connected components) are
// placed on the far side.
package separator
