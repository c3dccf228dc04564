package config

// SweepConfig controls the optional periodic expiry sweep.  By default
// expired matches are only pruned when somebody loads the collection; turning
// the scheduler on adds a cron-driven sweep on top of that.
type SweepConfig struct {
	Enabled  bool
	CronSpec string // standard 5-field spec, evaluated in the match timezone
}

// LoadSweepConfig reads SWEEP_ENABLED and SWEEP_CRON.
func LoadSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:  envBool("SWEEP_ENABLED", false),
		CronSpec: envStr("SWEEP_CRON", "*/15 * * * *"),
	}
}
