package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/touchblock/internal/world/block"
)

const sceneYAML = `
scene:
  id: test
  actors:
    - kind: controller
    - kind: player
      tag: Player
  blocks:
    - id: coin-1
      prefab: coin
      position: [1, 2, 3]
    - id: gate-1
      target_tags: [Player, Player2]
      reactions:
        - {target: GameController, function: ChangeScore, param: 10}
        - {target: Player, function: AttachToThis}
        - {target: Player2, function: ""}
      remove_after_touches: 2
      hit_sound: ding
      sound_source: GameController
  contacts:
    - {actor: Player, block: gate-1, advance: 0.5}
    - {actor: GameController, block: coin-1}
`

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("TOUCHBLOCK_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.EventBus.Driver)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "main", cfg.Scene.ID)
}

func TestLoad_FromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	t.Setenv("TOUCHBLOCK_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Scene.ID)
	// Незаданные секции берутся из Default
	assert.Equal(t, 1024, cfg.EventBus.Capacity)
}

func TestLoad_ExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "blockhost.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "crossing", cfg.Scene.ID)
	assert.NotEmpty(t, cfg.Scene.Contacts)
}

func TestParse_SceneConversion(t *testing.T) {
	cfg, err := Parse([]byte(sceneYAML))
	require.NoError(t, err)
	require.Len(t, cfg.Scene.Blocks, 2)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, Vec(cfg.Scene.Blocks[0].Position))

	bc, err := cfg.Scene.Blocks[1].BlockConfig()
	require.NoError(t, err)
	assert.Equal(t, block.TargetTags{"Player", "Player2"}, bc.TargetTags)
	require.Len(t, bc.Reactions, 3)
	assert.Equal(t, block.SendMessage{Fn: block.FuncChangeScore, Param: 10}, bc.Reactions[0].Action)
	assert.Equal(t, block.AttachSelf{}, bc.Reactions[1].Action)
	assert.Equal(t, block.Inert{}, bc.Reactions[2].Action)
	assert.Equal(t, block.ControllerTag, bc.SoundSourceTag)

	_, err = block.New(bc, block.Env{})
	assert.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scene.StepFor(cfg.Scene.Contacts[0]))
	assert.Equal(t, 0.1, cfg.Scene.StepFor(cfg.Scene.Contacts[1]))
}

func TestParse_RejectsInvalidBlocks(t *testing.T) {
	cases := map[string]string{
		"unknown function": `
scene:
  blocks:
    - id: b
      target_tags: [Player]
      reactions: [{target: Player, function: Explode}]`,
		"negative touches": `
scene:
  blocks:
    - id: b
      target_tags: [Player]
      remove_after_touches: -1`,
		"too many tags": `
scene:
  blocks:
    - id: b
      target_tags: [A, B, C, D]`,
		"no tags and no prefab": `
scene:
  blocks:
    - id: b`,
		"bad driver": `
storage:
  driver: mongo`,
		"short position": `
scene:
  blocks:
    - id: b
      prefab: coin
      position: [1, 2]`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_CrossReferences(t *testing.T) {
	_, err := Parse([]byte(`
scene:
  actors: [{kind: player, tag: Player}]
  blocks: [{id: a, prefab: coin}, {id: a, prefab: rock}]`))
	assert.ErrorIs(t, err, ErrDuplicateBlock)

	_, err = Parse([]byte(`
scene:
  actors: [{kind: controller}, {kind: controller, tag: GameController}]`))
	assert.ErrorIs(t, err, ErrDuplicateActor)

	_, err = Parse([]byte(`
scene:
  actors: [{kind: player, tag: Player}]
  blocks: [{id: a, prefab: coin}]
  contacts: [{actor: Player, block: missing}]`))
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("TOUCHBLOCK_METRICS_PORT", "9100")
	t.Setenv("TOUCHBLOCK_REDIS_ADDR", "")

	m := MetricsConfig{}
	assert.Equal(t, 9100, m.GetMetricsPort())
	m.Port = 9200
	assert.Equal(t, 9200, m.GetMetricsPort())

	r := RedisConfig{}
	assert.Equal(t, "localhost:6379", r.GetAddr())

	a := AudioConfig{}
	assert.Positive(t, a.BufferDuration())
}

func TestSchema_FunctionsMatchCatalogue(t *testing.T) {
	var doc struct {
		Defs struct {
			Rule struct {
				Properties struct {
					Function struct {
						Enum []string `json:"enum"`
					} `json:"function"`
				} `json:"properties"`
			} `json:"rule"`
		} `json:"$defs"`
	}
	require.NoError(t, json.Unmarshal([]byte(configSchema), &doc))

	want := []string{""}
	for _, fn := range block.KnownFunctions() {
		want = append(want, string(fn))
	}
	assert.ElementsMatch(t, want, doc.Defs.Rule.Properties.Function.Enum)
}
