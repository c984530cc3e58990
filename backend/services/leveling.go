package services

import "math"

// Leveling maps cumulative XP onto fixed-size level buckets. xpPerLevel
// comes from configuration and must be positive; callers own that guarantee.

// Level returns the level for a cumulative XP total, starting at 1.
func Level(xp, xpPerLevel int) int {
	return xp/xpPerLevel + 1
}

// LevelProgress returns how far into the current level the user is, as a
// rounded percentage in [0, 100]. Exactly 0 at level boundaries; rounding
// can report 100 just below a boundary once a level spans more than 200 XP.
func LevelProgress(xp, xpPerLevel int) int {
	remainder := xp % xpPerLevel
	return int(math.Round(float64(remainder) / float64(xpPerLevel) * 100))
}

// XPToNextLevel returns how much XP is missing until the next level.
func XPToNextLevel(xp, xpPerLevel int) int {
	return xpPerLevel - xp%xpPerLevel
}
