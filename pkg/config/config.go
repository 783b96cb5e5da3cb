// Package config carries the recognized keys from spec.md §6. Loading a
// config *file* is named out of scope in spec.md §1 (an external
// collaborator); the Load function below is a thin, optional convenience
// built the way the teacher repository's pkg/config loads env-backed
// config with viper — the pipeline itself only ever depends on *Config.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// LockMode selects how Pass 2 (spec.md §4.10) locks the Pass-1 structural
// outcome.
type LockMode string

const (
	LockModeExact LockMode = "exact"
	LockModeLimit LockMode = "limit"
)

// Config mirrors every configuration key spec.md §6 recognizes.
type Config struct {
	Env string
	Log LogConfig

	SchedulingDays      []string
	DayStartMinutes     int
	DayEndMinutes       int
	FridayEndMinutes    int
	TimeGranularity     int // TIME_GRANULARITY_MINUTES, 10 or 30

	LectureUnitToHours float64
	LabUnitToHours     float64

	MaxContinuousClassHours float64
	MinContinuousClassHours float64
	MaxGapHours             float64
	MinGapHours             float64

	MaxStudentsGened  int
	MinStudentsGened  int
	MaxStudentsCCISM  int

	Penalties ConstraintPenalties

	Pass2LockMode            LockMode
	FilterInfeasibleSubjects bool

	Solver SolverConfig
	Redis  RedisConfig
}

// LogConfig governs the ambient logging stack (SPEC_FULL.md §A.1). Dir,
// when set, points zap at an append-only <Dir>/solve.log (one file that
// successive runs append to) and is where
// the per-pass statistics summary (spec.md §4.11, §6 Outputs) is
// written alongside it; empty disables both and logs to stderr only.
type LogConfig struct {
	Level  string
	Format string
	Dir    string
}

// ConstraintPenalties are the per-hour/per-minute/per-student weights
// spec.md §6 names; the two-pass driver (spec.md §4.10) divides the
// per-hour weights by slots_per_hour = 60/G before use.
type ConstraintPenalties struct {
	FacultyOverloadPerMinute   float64
	RoomOvercapacityPerStudent float64
	SectionOverfillPerStudent  float64
	SectionUnderfillPerStudent float64
	GenedUnderMinimumPerStudent float64
	ExcessContinuousClassPerHour float64
	UnderMinimumBlockPerHour     float64
	ExcessGapPerHour             float64
	UnderfillGapPerHour          float64
	NonPreferredSubjectPerSection float64
	DayGapPenalty                 float64
}

// SolverConfig governs the CP-SAT facade (spec.md §5): worker count,
// determinism, and the per-pass wall-clock budgets.
type SolverConfig struct {
	NumWorkers       int
	Deterministic    bool
	Seed             int64
	Pass1TimeBudget  time.Duration
	Pass2TimeBudget  time.Duration
	RunPass2         bool
	SymmetryBreak    bool
}

// RedisConfig backs the optional idempotence cache (SPEC_FULL.md §B).
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Load reads process environment (and an optional .env overlay) into a
// Config, the way the teacher repository's pkg/config does it. Operators
// that already hold a parsed config object (e.g. from their own CSV/JSON
// ingestion, out of scope per spec.md §1) can construct Config directly
// and skip this entirely.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("ENV"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Dir:    v.GetString("LOG_DIR"),
		},
		SchedulingDays:           splitAndTrim(v.GetString("SCHEDULING_DAYS")),
		DayStartMinutes:          v.GetInt("DAY_START_MINUTES"),
		DayEndMinutes:            v.GetInt("DAY_END_MINUTES"),
		FridayEndMinutes:         v.GetInt("FRIDAY_END_MINUTES"),
		TimeGranularity:          v.GetInt("TIME_GRANULARITY_MINUTES"),
		LectureUnitToHours:       v.GetFloat64("LECTURE_UNIT_TO_HOURS"),
		LabUnitToHours:           v.GetFloat64("LAB_UNIT_TO_HOURS"),
		MaxContinuousClassHours:  v.GetFloat64("MAX_CONTINUOUS_CLASS_HOURS"),
		MinContinuousClassHours:  v.GetFloat64("MIN_CONTINUOUS_CLASS_HOURS"),
		MaxGapHours:              v.GetFloat64("MAX_GAP_HOURS"),
		MinGapHours:              v.GetFloat64("MIN_GAP_HOURS"),
		MaxStudentsGened:         v.GetInt("MAX_STUDENTS_GENED"),
		MinStudentsGened:         v.GetInt("MIN_STUDENTS_GENED"),
		MaxStudentsCCISM:         v.GetInt("MAX_STUDENTS_CCISM"),
		Pass2LockMode:            LockMode(v.GetString("PASS2_LOCK_MODE")),
		FilterInfeasibleSubjects: v.GetBool("FILTER_INFEASIBLE_SUBJECTS"),
		Penalties: ConstraintPenalties{
			FacultyOverloadPerMinute:      v.GetFloat64("FACULTY_OVERLOAD_PER_MINUTE"),
			RoomOvercapacityPerStudent:    v.GetFloat64("ROOM_OVERCAPACITY_PER_STUDENT"),
			SectionOverfillPerStudent:     v.GetFloat64("SECTION_OVERFILL_PER_STUDENT"),
			SectionUnderfillPerStudent:    v.GetFloat64("SECTION_UNDERFILL_PER_STUDENT"),
			GenedUnderMinimumPerStudent:   v.GetFloat64("GENED_UNDER_MINIMUM_PER_STUDENT"),
			ExcessContinuousClassPerHour:  v.GetFloat64("EXCESS_CONTINUOUS_CLASS_PER_HOUR"),
			UnderMinimumBlockPerHour:      v.GetFloat64("UNDER_MINIMUM_BLOCK_PER_HOUR"),
			ExcessGapPerHour:              v.GetFloat64("EXCESS_GAP_PER_HOUR"),
			UnderfillGapPerHour:           v.GetFloat64("UNDERFILL_GAP_PER_HOUR"),
			NonPreferredSubjectPerSection: v.GetFloat64("NON_PREFERRED_SUBJECT_PER_SECTION"),
			DayGapPenalty:                 v.GetFloat64("DAY_GAP_PENALTY"),
		},
		Solver: SolverConfig{
			NumWorkers:      v.GetInt("SOLVER_NUM_WORKERS"),
			Deterministic:   v.GetBool("SOLVER_DETERMINISTIC"),
			Seed:            v.GetInt64("SOLVER_SEED"),
			Pass1TimeBudget: parseDuration(v.GetString("SOLVER_PASS1_TIME_BUDGET"), 30*time.Second),
			Pass2TimeBudget: parseDuration(v.GetString("SOLVER_PASS2_TIME_BUDGET"), 30*time.Second),
			RunPass2:        v.GetBool("SOLVER_RUN_PASS2"),
			SymmetryBreak:   v.GetBool("SOLVER_SYMMETRY_BREAK"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_DIR", "./logs")

	v.SetDefault("SCHEDULING_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")
	v.SetDefault("DAY_START_MINUTES", 8*60)
	v.SetDefault("DAY_END_MINUTES", 17*60)
	v.SetDefault("FRIDAY_END_MINUTES", 16*60)
	v.SetDefault("TIME_GRANULARITY_MINUTES", 30)

	v.SetDefault("LECTURE_UNIT_TO_HOURS", 1.0)
	v.SetDefault("LAB_UNIT_TO_HOURS", 1.0)

	v.SetDefault("MAX_CONTINUOUS_CLASS_HOURS", 3.0)
	v.SetDefault("MIN_CONTINUOUS_CLASS_HOURS", 1.0)
	v.SetDefault("MAX_GAP_HOURS", 2.0)
	v.SetDefault("MIN_GAP_HOURS", 0.5)

	v.SetDefault("MAX_STUDENTS_GENED", 40)
	v.SetDefault("MIN_STUDENTS_GENED", 20)
	v.SetDefault("MAX_STUDENTS_CCISM", 35)

	v.SetDefault("FACULTY_OVERLOAD_PER_MINUTE", 1.0)
	v.SetDefault("ROOM_OVERCAPACITY_PER_STUDENT", 5.0)
	v.SetDefault("SECTION_OVERFILL_PER_STUDENT", 2.0)
	v.SetDefault("SECTION_UNDERFILL_PER_STUDENT", 2.0)
	v.SetDefault("GENED_UNDER_MINIMUM_PER_STUDENT", 1.0)
	v.SetDefault("EXCESS_CONTINUOUS_CLASS_PER_HOUR", 10.0)
	v.SetDefault("UNDER_MINIMUM_BLOCK_PER_HOUR", 10.0)
	v.SetDefault("EXCESS_GAP_PER_HOUR", 5.0)
	v.SetDefault("UNDERFILL_GAP_PER_HOUR", 5.0)
	v.SetDefault("NON_PREFERRED_SUBJECT_PER_SECTION", 3.0)
	v.SetDefault("DAY_GAP_PENALTY", 8.0)

	v.SetDefault("PASS2_LOCK_MODE", "exact")
	v.SetDefault("FILTER_INFEASIBLE_SUBJECTS", true)

	v.SetDefault("SOLVER_NUM_WORKERS", 8)
	v.SetDefault("SOLVER_DETERMINISTIC", false)
	v.SetDefault("SOLVER_SEED", 1)
	v.SetDefault("SOLVER_PASS1_TIME_BUDGET", "30s")
	v.SetDefault("SOLVER_PASS2_TIME_BUDGET", "30s")
	v.SetDefault("SOLVER_RUN_PASS2", true)
	v.SetDefault("SOLVER_SYMMETRY_BREAK", false)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}

// Validate enforces the fail-fast ConfigError boundary (spec.md §7): every
// key the core pipeline touches must be present and well-formed before a
// solve starts.
func (c *Config) Validate() error {
	if len(c.SchedulingDays) == 0 {
		return errors.New("config: SCHEDULING_DAYS must not be empty")
	}
	if c.TimeGranularity != 10 && c.TimeGranularity != 30 {
		return errors.New("config: TIME_GRANULARITY_MINUTES must be 10 or 30")
	}
	if c.DayEndMinutes <= c.DayStartMinutes {
		return errors.New("config: DAY_END_MINUTES must be greater than DAY_START_MINUTES")
	}
	if c.FridayEndMinutes <= c.DayStartMinutes {
		return errors.New("config: FRIDAY_END_MINUTES must be greater than DAY_START_MINUTES")
	}
	if c.Pass2LockMode != LockModeExact && c.Pass2LockMode != LockModeLimit {
		return errors.New("config: PASS2_LOCK_MODE must be \"exact\" or \"limit\"")
	}
	return nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
