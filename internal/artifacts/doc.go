// Package artifacts owns every file the gateway writes: scratch files in
// the temp workspace and saved results in the per-user permanent store.
// All removal goes through secure deletion, and a background sweeper
// reclaims abandoned scratch space.
package artifacts
