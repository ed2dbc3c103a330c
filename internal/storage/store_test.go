package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-testutil"
)

// mockStoreSpec implements ValidatingSpec for testing FileStore
type mockStoreSpec struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func (s *mockStoreSpec) Validate() error {
	return nil
}

func writeAsset(t *testing.T, dir, file, id string, spec *mockStoreSpec) {
	t.Helper()
	data, err := json.Marshal(Asset[*mockStoreSpec]{Version: 1, Identifier: id, Spec: spec})
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	writeFile(t, filepath.Join(dir, file), string(data))
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*mockStoreSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, tmpDir, "item-1.json", "item-1", &mockStoreSpec{Name: "First", Value: 1})
	writeFile(t, filepath.Join(tmpDir, "item-2.yaml"), "version: 1\nid: item-2\nspec:\n  name: Second\n  value: 2\n")
	writeFile(t, filepath.Join(tmpDir, "item-3.yml"), "version: 1\nid: item-3\nspec:\n  name: Third\n  value: 3\n")

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 3)

	tests := map[string]struct {
		expName  string
		expValue int
	}{
		"item-1": {expName: "First", expValue: 1},
		"item-2": {expName: "Second", expValue: 2},
		"item-3": {expName: "Third", expValue: 3},
	}
	for id, tt := range tests {
		t.Run(id, func(t *testing.T) {
			item := store.Get(id)
			if item == nil {
				t.Fatalf("expected %s to be loaded", id)
			}
			testutil.AssertEqual(t, "name", item.Name, tt.expName)
			testutil.AssertEqual(t, "value", item.Value, tt.expValue)
		})
	}
}

func TestNewFileStore_InvalidFiles(t *testing.T) {
	tests := map[string]struct {
		file string
		data string
	}{
		"invalid json": {file: "bad.json", data: `{invalid json`},
		"invalid yaml": {file: "bad.yaml", data: "version: [1\n"},
		"version zero": {file: "zero.json", data: `{"version":0,"id":"test","spec":{"name":"Test"}}`},
		"missing spec": {file: "empty.yaml", data: "version: 1\nid: test\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, tt.file), tt.data)

			_, err := NewFileStore[*mockStoreSpec](tmpDir)
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewFileStore_DuplicateKey(t *testing.T) {
	tmpDir := t.TempDir()

	subDir := filepath.Join(tmpDir, "subdir")
	err := os.Mkdir(subDir, 0755)
	if err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	// Create two files with the same ID in different directories
	writeAsset(t, tmpDir, "file1.json", "duplicate-id", &mockStoreSpec{Name: "Test", Value: 1})
	writeAsset(t, subDir, "file2.json", "duplicate-id", &mockStoreSpec{Name: "Test", Value: 1})

	_, err = NewFileStore[*mockStoreSpec](tmpDir)
	testutil.AssertErrorContains(t, err, "duplicate key detected")
}

func TestNewFileStore_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, tmpDir, "valid.json", "valid", &mockStoreSpec{Name: "Valid", Value: 1})
	writeFile(t, filepath.Join(tmpDir, "readme.txt"), "ignore me")
	writeFile(t, filepath.Join(tmpDir, "notes.md"), "# ignore me")

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 1)
}

func TestFileStore_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	writeAsset(t, tmpDir, "a.json", "a", &mockStoreSpec{Name: "A", Value: 1})

	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeAsset(t, tmpDir, "a.json", "a", &mockStoreSpec{Name: "A", Value: 2})
	writeAsset(t, tmpDir, "b.json", "b", &mockStoreSpec{Name: "B", Value: 3})
	if err := store.Reload(); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	testutil.AssertEqual(t, "updated value", store.Get("a").Value, 2)
	testutil.AssertEqual(t, "record count", len(store.GetAll()), 2)

	// A broken file keeps the previous records.
	writeFile(t, filepath.Join(tmpDir, "c.json"), "{broken")
	if err := store.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	testutil.AssertEqual(t, "record count after failure", len(store.GetAll()), 2)
}

func TestFileStore_Get(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"existing": {Name: "Test", Value: 42},
	}

	tests := map[string]struct {
		id       string
		expNil   bool
		expName  string
		expValue int
	}{
		"get existing record": {
			id:       "existing",
			expName:  "Test",
			expValue: 42,
		},
		"get non-existing record": {
			id:     "nonexistent",
			expNil: true,
		},
		"get empty id": {
			id:     "",
			expNil: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := store.Get(tt.id)

			if tt.expNil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}
			if result == nil {
				t.Fatal("expected non-nil result")
			}
			testutil.AssertEqual(t, "name", result.Name, tt.expName)
			testutil.AssertEqual(t, "value", result.Value, tt.expValue)
		})
	}
}

func TestFileStore_GetAllReturnsCopy(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*mockStoreSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*mockStoreSpec{
		"one": {Name: "One", Value: 1},
		"two": {Name: "Two", Value: 2},
	}

	result := store.GetAll()
	testutil.AssertEqual(t, "count", len(result), 2)

	delete(result, "one")
	testutil.AssertEqual(t, "store count", len(store.records), 2)
}

func TestFileStore_GameAssets(t *testing.T) {
	archetypeDir := t.TempDir()
	writeFile(t, filepath.Join(archetypeDir, "zombie.yaml"), `version: 1
id: zombie-basic
spec:
  enemy_type: zombie
  weight: 5
  min_spawn_level: 1
  allowed_worlds: ["*"]
  commands:
    - "summon {{ .EnemyType }} {{ .SX }} {{ .SY }} {{ .SZ }}"
`)

	worldDir := t.TempDir()
	writeFile(t, filepath.Join(worldDir, "arena.json"), `{
  "version": 1,
  "id": "arena",
  "spec": {
    "display_name": "Arena",
    "weight": 2,
    "bounds": {"min_x": -100, "max_x": 100, "min_z": -100, "max_z": 100},
    "spawn_points": [{"x": 0, "y": 64, "z": 0}, {"x": 50, "y": 64, "z": 50, "tracking_radius": 20}]
  }
}`)

	archetypes, err := NewFileStore[*game.Archetype](archetypeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zombie := archetypes.Get("zombie-basic")
	if zombie == nil {
		t.Fatal("expected archetype to be loaded")
	}
	testutil.AssertEqual(t, "enemy type", zombie.EnemyType, "zombie")
	testutil.AssertEqual(t, "weight", zombie.Weight, 5.0)
	testutil.AssertEqual(t, "commands", len(zombie.Commands), 1)

	worlds, err := NewFileStore[*game.CombatWorld](worldDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arena := worlds.Get("arena")
	if arena == nil {
		t.Fatal("expected world to be loaded")
	}
	testutil.AssertEqual(t, "enabled by default", arena.IsEnabled(), true)
	testutil.AssertEqual(t, "spawn points", len(arena.SpawnPoints), 2)
	testutil.AssertEqual(t, "default radius", arena.SpawnPoints[0].Radius(), game.DefaultTrackingRadius)
	testutil.AssertEqual(t, "custom radius", arena.SpawnPoints[1].Radius(), 20.0)
}
