// meta/meta.go
package meta

// ROWS defines the number of rows of the default board.
const ROWS = 6

// COLUMNS defines the number of columns of the default board.
const COLUMNS = 7

// CONNECT defines how many same-colored tokens in a line win the game.
const CONNECT = 4

// MASTER_RANK defines the rank of the coordinating process.
const MASTER_RANK = 0

// SHALLOW_DEPTH defines the max depth of the coordinator's tree (two plies from depth 0).
const SHALLOW_DEPTH = 1

// WORKER_START_DEPTH defines the depth of a delegated node in the coordinator's tree.
const WORKER_START_DEPTH = 2

// WORKER_MAX_DEPTH defines the max depth workers expand delegated nodes to.
const WORKER_MAX_DEPTH = 6
