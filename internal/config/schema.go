package config

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema схема конфигурации хоста. Перечень функций совпадает с block.KnownFunctions.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "eventbus": {
      "type": "object",
      "properties": {
        "driver": {"enum": ["memory", "jetstream"]},
        "retention_hours": {"type": "integer", "minimum": 0},
        "capacity": {"type": "integer", "minimum": 0}
      }
    },
    "storage": {
      "type": "object",
      "properties": {
        "driver": {"enum": ["memory", "badger", "redis"]}
      }
    },
    "telemetry": {
      "type": "object",
      "properties": {
        "sample_ratio": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "scene": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "step_seconds": {"type": "number", "minimum": 0},
        "effect_ttl_seconds": {"type": "number", "minimum": 0},
        "actors": {"type": "array", "items": {"$ref": "#/$defs/actor"}},
        "blocks": {"type": "array", "items": {"$ref": "#/$defs/block"}},
        "contacts": {"type": "array", "items": {"$ref": "#/$defs/contact"}}
      }
    }
  },
  "$defs": {
    "position": {
      "type": "array",
      "items": {"type": "number"},
      "minItems": 3,
      "maxItems": 3
    },
    "actor": {
      "type": "object",
      "required": ["kind"],
      "properties": {
        "kind": {"enum": ["", "player", "controller"]},
        "tag": {"type": "string"},
        "position": {"$ref": "#/$defs/position"}
      }
    },
    "rule": {
      "type": "object",
      "required": ["target"],
      "properties": {
        "target": {"type": "string", "minLength": 1},
        "function": {"enum": ["", "AttachToThis", "ChangeScore", "ChangeSpeed", "Die", "Heal", "Shield"]},
        "param": {"type": "number"}
      }
    },
    "block": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "prefab": {"type": "string", "minLength": 1},
        "target_tags": {
          "type": "array",
          "items": {"type": "string", "minLength": 1},
          "minItems": 1,
          "maxItems": 3
        },
        "reactions": {"type": "array", "items": {"$ref": "#/$defs/rule"}},
        "remove_after_touches": {"type": "integer", "minimum": 0},
        "position": {"$ref": "#/$defs/position"}
      },
      "anyOf": [
        {"required": ["prefab"]},
        {"required": ["target_tags"]}
      ]
    },
    "contact": {
      "type": "object",
      "required": ["actor", "block"],
      "properties": {
        "actor": {"type": "string", "minLength": 1},
        "block": {"type": "string", "minLength": 1},
        "position": {"$ref": "#/$defs/position"},
        "advance": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("touchblock.schema.json", configSchema)

// validateSchema прогоняет конфигурацию через JSON, чтобы схема видела те же поля, что и YAML
func validateSchema(c *Config) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
