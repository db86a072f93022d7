package cache

// KeyActiveMatrix is the cache key holding the active rate matrix.
// The version suffix allows payload-shape changes without a flush.
const KeyActiveMatrix = "ratematrix:active:v1"
