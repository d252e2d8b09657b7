package champions

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

//go:embed data/champions.json
var embeddedFS embed.FS

const embeddedDataPath = "data/champions.json"

// snapshot is the copy-on-write payload swapped by Refresh.
type snapshot struct {
	byID   map[uint32]Champion
	byName map[string]Champion
}

// Registry resolves champion id <-> canonical name and exposes lane
// aptitude lookups. It is safe for concurrent use: readers always see a
// complete, consistent snapshot, even while a refresh is in flight.
type Registry struct {
	current atomic.Pointer[snapshot]
	log     *zap.Logger
	client  *http.Client
	cdnBase string
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithHTTPClient overrides the client used for CDN refresh requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.client = c }
}

// WithCDNBase overrides the vendor CDN base URL (default is the live
// Data Dragon host); tests point this at an httptest.Server.
func WithCDNBase(base string) Option {
	return func(r *Registry) { r.cdnBase = base }
}

const defaultCDNBase = "https://ddragon.leagueoflegends.com"

// New loads the embedded champion set and returns a ready Registry.
func New(log *zap.Logger, opts ...Option) (*Registry, error) {
	data, err := embeddedFS.ReadFile(embeddedDataPath)
	if err != nil {
		return nil, fmt.Errorf("champions: read embedded data: %w", err)
	}

	r := &Registry{
		log:     log,
		client:  &http.Client{Timeout: 10 * time.Second},
		cdnBase: defaultCDNBase,
	}
	for _, opt := range opts {
		opt(r)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("champions: decode embedded data: %w", err)
	}
	r.current.Store(snap)
	return r, nil
}

func decodeSnapshot(data []byte) (*snapshot, error) {
	var champs []Champion
	if err := json.Unmarshal(data, &champs); err != nil {
		return nil, err
	}
	return buildSnapshot(champs), nil
}

func buildSnapshot(champs []Champion) *snapshot {
	snap := &snapshot{
		byID:   make(map[uint32]Champion, len(champs)),
		byName: make(map[string]Champion, len(champs)),
	}
	for _, c := range champs {
		snap.byID[c.ID] = c
		snap.byName[NormaliseName(c.CanonicalName)] = c
	}
	return snap
}

// ByID looks up a champion by its numeric id.
func (r *Registry) ByID(id uint32) (Champion, bool) {
	snap := r.current.Load()
	c, ok := snap.byID[id]
	return c, ok
}

// ByName looks up a champion by its normalised canonical name.
func (r *Registry) ByName(name string) (Champion, bool) {
	snap := r.current.Load()
	c, ok := snap.byName[NormaliseName(name)]
	return c, ok
}

// Len reports how many champions the current snapshot holds.
func (r *Registry) Len() int {
	return len(r.current.Load().byID)
}

// ddVersions is the shape of GET <cdn>/api/versions.json.
type ddVersions []string

// ddChampionFile is the shape of GET <cdn>/cdn/<version>/data/en_US/champion.json.
type ddChampionFile struct {
	Data map[string]ddChampion `json:"data"`
}

type ddChampion struct {
	Key  string   `json:"key"` // numeric id, as a string
	ID   string   `json:"id"`  // canonical internal id, e.g. "MonkeyKing"
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Refresh pulls the latest champion set from the vendor CDN and swaps it
// in atomically. On any failure the embedded/previous snapshot remains
// authoritative and the error is returned for the caller to log; it is
// never fatal to the agent.
func (r *Registry) Refresh(ctx context.Context) error {
	version, err := r.latestVersion(ctx)
	if err != nil {
		return fmt.Errorf("champions: fetch version: %w", err)
	}

	file, err := r.championFile(ctx, version)
	if err != nil {
		return fmt.Errorf("champions: fetch champion file: %w", err)
	}

	prev := r.current.Load()
	merged := mergeCDN(prev, file)
	r.current.Store(merged)
	r.log.Info("champion registry refreshed",
		zap.String("version", version),
		zap.Int("champions", len(merged.byID)))
	return nil
}

func (r *Registry) latestVersion(ctx context.Context) (string, error) {
	var versions ddVersions
	if err := r.getJSON(ctx, r.cdnBase+"/api/versions.json", &versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("empty versions list")
	}
	return versions[0], nil
}

func (r *Registry) championFile(ctx context.Context, version string) (ddChampionFile, error) {
	var file ddChampionFile
	url := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json", r.cdnBase, version)
	if err := r.getJSON(ctx, url, &file); err != nil {
		return ddChampionFile{}, err
	}
	return file, nil
}

func (r *Registry) getJSON(ctx context.Context, url string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

// mergeCDN folds CDN id/name data over the previous snapshot, keeping
// the embedded lane-aptitude weights (the CDN response carries no
// aptitude data of its own).
func mergeCDN(prev *snapshot, file ddChampionFile) *snapshot {
	next := &snapshot{
		byID:   make(map[uint32]Champion, len(file.Data)),
		byName: make(map[string]Champion, len(file.Data)),
	}
	for _, dd := range file.Data {
		key, err := strconv.ParseUint(dd.Key, 10, 32)
		if err != nil {
			continue
		}
		id := uint32(key)

		champ := Champion{
			ID:            id,
			CanonicalName: NormaliseName(dd.Name),
			DisplayNames:  map[string]string{"en_US": dd.Name},
		}
		if existing, ok := prev.byID[id]; ok {
			champ.LaneAptitude = existing.LaneAptitude
			if len(champ.DisplayNames) == 0 {
				champ.DisplayNames = existing.DisplayNames
			}
		}
		next.byID[id] = champ
		next.byName[NormaliseName(dd.Name)] = champ
	}
	return next
}
