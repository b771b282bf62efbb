package models

import "math"

// Config keys shared by the editor, the validator and the document codecs.
const (
	ConfigTriggerType   = "triggerType"
	ConfigActionType    = "actionType"
	ConfigParameters    = "parameters"
	ConfigConditionType = "conditionType"
	ConfigRules         = "rules"
	ConfigDefaultPath   = "defaultPath"
	ConfigDelayMs       = "delayMs"
	ConfigLoopType      = "loopType"
	ConfigMaxIterations = "maxIterations"
	ConfigCron          = "cron"
)

// TriggerTypeSchedule names the time-based trigger; its config carries a cron expression.
const TriggerTypeSchedule = "schedule"

// TriggerConfig is the typed view of a trigger node's config.
type TriggerConfig struct {
	TriggerType string
	Cron        string
}

// ActionConfig is the typed view of an action node's config.
type ActionConfig struct {
	ActionType string
	Parameters map[string]any
}

// ConditionConfig is the typed view of a condition node's config.
type ConditionConfig struct {
	ConditionType string
	Rules         []any
	DefaultPath   *string
}

// DelayConfig is the typed view of a delay node's config.
type DelayConfig struct {
	DelayMs int64
}

// LoopConfig is the typed view of a loop node's config.
type LoopConfig struct {
	LoopType      string
	MaxIterations int64
}

// TriggerConfig decodes the node config leniently; missing or mistyped keys yield zero values.
func (n *Node) TriggerConfig() TriggerConfig {
	return TriggerConfig{
		TriggerType: stringValue(n.Config, ConfigTriggerType),
		Cron:        stringValue(n.Config, ConfigCron),
	}
}

func (n *Node) ActionConfig() ActionConfig {
	params, _ := n.Config[ConfigParameters].(map[string]any)

	return ActionConfig{
		ActionType: stringValue(n.Config, ConfigActionType),
		Parameters: params,
	}
}

func (n *Node) ConditionConfig() ConditionConfig {
	rules, _ := n.Config[ConfigRules].([]any)

	cfg := ConditionConfig{
		ConditionType: stringValue(n.Config, ConfigConditionType),
		Rules:         rules,
	}

	if path, ok := n.Config[ConfigDefaultPath].(string); ok && path != "" {
		cfg.DefaultPath = &path
	}

	return cfg
}

func (n *Node) DelayConfig() DelayConfig {
	delay, _ := IntValue(n.Config, ConfigDelayMs)

	return DelayConfig{DelayMs: delay}
}

// LoopConfig decodes the loop config. A missing maxIterations decodes as 0.
func (n *Node) LoopConfig() LoopConfig {
	limit, _ := IntValue(n.Config, ConfigMaxIterations)

	return LoopConfig{
		LoopType:      stringValue(n.Config, ConfigLoopType),
		MaxIterations: limit,
	}
}

// IntValue reads an integral number from config, accepting every numeric type the
// document codecs may produce. Fractional values are truncated toward zero and
// out-of-range values saturate.
func IntValue(config map[string]any, key string) (int64, bool) {
	switch v := config[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return math.MaxInt64, true
		}

		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	default:
		return 0, false
	}
}

// floatToInt truncates f, saturating at the int64 range. NaN is not a number of
// iterations or milliseconds, so it reports false.
func floatToInt(f float64) (int64, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt64, true
	case f <= math.MinInt64:
		return math.MinInt64, true
	default:
		return int64(f), true
	}
}

func stringValue(config map[string]any, key string) string {
	s, _ := config[key].(string)

	return s
}
