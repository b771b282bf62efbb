package validation

import (
	"fmt"
	"strings"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

// configSchemas describe the expected config shape of each node kind. Bounds that
// make a graph unusable (loop iterations, negative delays) are checked as errors
// elsewhere, so the schemas only carry presence and type information.
var configSchemas = map[models.NodeKind]map[string]any{
	models.NodeKindTrigger: {
		"type":     "object",
		"required": []string{models.ConfigTriggerType},
		"properties": map[string]any{
			models.ConfigTriggerType: map[string]any{"type": "string", "minLength": 1},
			models.ConfigCron:        map[string]any{"type": "string"},
		},
	},
	models.NodeKindAction: {
		"type":     "object",
		"required": []string{models.ConfigActionType},
		"properties": map[string]any{
			models.ConfigActionType: map[string]any{"type": "string", "minLength": 1},
			models.ConfigParameters: map[string]any{"type": "object"},
		},
	},
	models.NodeKindCondition: {
		"type":     "object",
		"required": []string{models.ConfigConditionType, models.ConfigRules},
		"properties": map[string]any{
			models.ConfigConditionType: map[string]any{"type": "string", "minLength": 1},
			models.ConfigRules:         map[string]any{"type": "array"},
			models.ConfigDefaultPath:   map[string]any{"type": []string{"string", "null"}},
		},
	},
	models.NodeKindDelay: {
		"type":     "object",
		"required": []string{models.ConfigDelayMs},
		"properties": map[string]any{
			models.ConfigDelayMs: map[string]any{"type": "integer"},
		},
	},
	models.NodeKindLoop: {
		"type":     "object",
		"required": []string{models.ConfigLoopType, models.ConfigMaxIterations},
		"properties": map[string]any{
			models.ConfigLoopType:      map[string]any{"type": "string", "minLength": 1},
			models.ConfigMaxIterations: map[string]any{"type": "integer"},
		},
	},
}

var compiledSchemas = mustCompileSchemas()

func mustCompileSchemas() map[models.NodeKind]*gojsonschema.Schema {
	compiled := make(map[models.NodeKind]*gojsonschema.Schema, len(configSchemas))

	for kind, schema := range configSchemas {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
		if err != nil {
			panic(fmt.Sprintf("invalid %s config schema: %v", kind, err))
		}

		compiled[kind] = s
	}

	return compiled
}

// ConfigSchema returns the JSON schema for a node kind's config, or nil for an
// unknown kind.
func ConfigSchema(kind models.NodeKind) map[string]any {
	return configSchemas[kind]
}

func (v *validator) checkConfigSchemas() {
	for _, node := range v.nodes {
		schema, ok := compiledSchemas[node.Kind]
		if !ok {
			continue
		}

		config := node.Config
		if config == nil {
			config = map[string]any{}
		}

		result, err := schema.Validate(gojsonschema.NewGoLoader(config))
		if err != nil {
			v.addWarning(Issue{
				Code:    CodeInvalidConfig,
				NodeID:  node.ID,
				Message: fmt.Sprintf("%s %s config could not be checked: %v", node.Kind, node.ID, err),
			})

			continue
		}

		if result.Valid() {
			continue
		}

		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		v.addWarning(Issue{
			Code:    CodeInvalidConfig,
			NodeID:  node.ID,
			Message: fmt.Sprintf("%s %s config is incomplete: %s", node.Kind, node.ID, strings.Join(details, "; ")),
		})
	}
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// checkSchedules lints the cron expression of schedule triggers.
func (v *validator) checkSchedules() {
	for _, node := range v.nodes {
		if !node.IsTrigger() {
			continue
		}

		cfg := node.TriggerConfig()
		if cfg.TriggerType != models.TriggerTypeSchedule {
			continue
		}

		if cfg.Cron == "" {
			v.addWarning(Issue{
				Code:    CodeInvalidSchedule,
				NodeID:  node.ID,
				Message: fmt.Sprintf("schedule trigger %s has no cron expression", node.ID),
			})

			continue
		}

		if _, err := scheduleParser.Parse(cfg.Cron); err != nil {
			v.addWarning(Issue{
				Code:    CodeInvalidSchedule,
				NodeID:  node.ID,
				Message: fmt.Sprintf("schedule trigger %s has invalid cron expression %q: %v", node.ID, cfg.Cron, err),
			})
		}
	}
}
