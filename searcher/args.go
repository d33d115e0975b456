package searcher

// Node values from the cpu's perspective

const Win = 1.0
const Loss = -Win
const Neutral = 0.0
