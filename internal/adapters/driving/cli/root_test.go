package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

type mockTutorService struct {
	mu        sync.Mutex
	questions []string
	opts      []domain.AskOptions
	result    *domain.QueryResult
	err       error
	records   []domain.ScoredRecord
	tier      domain.PipelineTier
}

func (m *mockTutorService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, question)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{Answer: []string{"answer to " + question}, Query: question}, nil
}

func (m *mockTutorService) SubjectExpertise(context.Context, string) ([]domain.ScoredRecord, error) {
	return m.records, nil
}

func (m *mockTutorService) Tier() domain.PipelineTier {
	if m.tier == "" {
		return domain.TierFull
	}
	return m.tier
}

type ingestCall struct {
	path    string
	subject string
	topic   string
}

type mockIngestService struct {
	mu      sync.Mutex
	files   []ingestCall
	dirs    []ingestCall
	fileErr error
	chunks  int
	seeded  int
}

func (m *mockIngestService) IngestFile(_ context.Context, path, subject, topic string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, ingestCall{path: path, subject: subject, topic: topic})
	if m.fileErr != nil {
		return 0, m.fileErr
	}
	return m.chunks, nil
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir, subject string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, ingestCall{path: dir, subject: subject})
	return m.chunks, nil
}

func (m *mockIngestService) Seed(context.Context) (int, error) {
	return m.seeded, nil
}

func (m *mockIngestService) fileCalls() []ingestCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ingestCall(nil), m.files...)
}

type mockPipelineStatus struct {
	tier        domain.PipelineTier
	transitions []domain.Transition
	warnings    []string
	count       int
}

func (m *mockPipelineStatus) Tier() domain.PipelineTier        { return m.tier }
func (m *mockPipelineStatus) Transitions() []domain.Transition { return m.transitions }
func (m *mockPipelineStatus) Warnings() []string               { return m.warnings }
func (m *mockPipelineStatus) Count(context.Context) (int, error) {
	return m.count, nil
}

type mockSettingsService struct {
	settings    domain.Settings
	set         map[string]string
	setErr      error
	validateErr error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (domain.Settings, error) { return m.settings, nil }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	if key == "store.postgres_url" {
		m.settings.Store.PostgresURL = value
	}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = p
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

type mockValidator struct {
	err error
}

func (m *mockValidator) ValidateEmbeddingConfig(context.Context, *domain.EmbeddingSettings) error {
	return m.err
}

func (m *mockValidator) ValidateLLMConfig(context.Context, *domain.LLMSettings) error {
	return m.err
}

type testServices struct {
	tutor    *mockTutorService
	ingest   *mockIngestService
	status   *mockPipelineStatus
	settings *mockSettingsService
}

// setupTestServices installs mocks into the package variables and resets
// flag values left over from earlier commands.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		tutor:  &mockTutorService{},
		ingest: &mockIngestService{chunks: 3, seeded: 6},
		status: &mockPipelineStatus{
			tier: domain.TierDegraded,
			transitions: []domain.Transition{
				{From: domain.StateProbeFull, To: domain.StateProbeAltPaths, Reason: "postgres: connection refused"},
				{From: domain.StateProbeAltPaths, To: domain.StateProbeDegraded, Reason: "ollama not reachable"},
				{From: domain.StateProbeDegraded, To: domain.StateReady, Tier: domain.TierDegraded},
			},
			warnings: []string{"postgres: connection refused", "ollama not reachable"},
			count:    12,
		},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Tutor:    ts.tutor,
		Ingest:   ts.ingest,
		Status:   ts.status,
		Settings: ts.settings,
		Server:   domain.DefaultSettings().Server,
	})
	resetFlags()

	t.Cleanup(func() {
		tutorService = nil
		ingestService = nil
		pipelineStatus = nil
		settingsService = nil
		providerValidator = nil
		closeServices = nil
		appFactory = nil
		settingsFactory = nil
		serverSettings = domain.DefaultSettings().Server
		resetFlags()
	})
	return ts
}

func resetFlags() {
	configPath = ""
	verbose = false
	askSubject, askTopK, askJSON = "", 0, false
	ingestSubject, ingestTopic, ingestWatch = DefaultSubject, "", false
	statusJSON = false
	chatSubject, chatPlain = "", false
	serveAddr, serveSeed = "", false
}

// runCommand executes the root command with args and stdin, returning
// everything written to stdout and stderr.
func runCommand(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestRootCmd_Metadata(t *testing.T) {
	assert.Equal(t, "educhat", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"ask", "chat", "ingest", "seed", "status", "serve", "mcp", "settings", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestPrepare_BuildsAppOnDemand(t *testing.T) {
	setupTestServices(t)
	tutorService, ingestService, pipelineStatus = nil, nil, nil

	var gotPath string
	closed := false
	status := &mockPipelineStatus{tier: domain.TierNull}
	SetAppFactory(func(_ context.Context, path string) (*Services, error) {
		gotPath = path
		return &Services{
			Tutor:  &mockTutorService{tier: domain.TierNull},
			Status: status,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	})

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"status", "--config", "/tmp/educhat.toml"})
	defer rootCmd.SetArgs(nil)

	err := Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/tmp/educhat.toml", gotPath)
	assert.True(t, closed, "Execute releases the app")
}

func TestPrepare_AppFactoryError(t *testing.T) {
	setupTestServices(t)
	tutorService = nil
	SetAppFactory(func(context.Context, string) (*Services, error) {
		return nil, errors.New("bootstrap exploded")
	})

	_, err := runCommand(t, context.Background(), "", "ask", "hello")

	assert.ErrorContains(t, err, "bootstrap exploded")
}

func TestPrepare_VersionSkipsFactories(t *testing.T) {
	setupTestServices(t)
	tutorService, settingsService = nil, nil
	SetAppFactory(func(context.Context, string) (*Services, error) {
		t.Fatal("version must not bootstrap the app")
		return nil, nil
	})

	out, err := runCommand(t, context.Background(), "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "educhat version")
}

func TestPrepare_SettingsFactory(t *testing.T) {
	ts := setupTestServices(t)
	settingsService = nil
	var gotPath string
	SetSettingsFactory(func(path string) (driving.SettingsService, error) {
		gotPath = path
		return ts.settings, nil
	})

	out, err := runCommand(t, context.Background(), "", "settings", "show", "--config", "custom.yaml")

	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", gotPath)
	assert.Contains(t, out, "Current Settings")
}

func TestSetServices_Nil(t *testing.T) {
	setupTestServices(t)
	before := tutorService

	SetServices(nil)

	assert.Equal(t, before, tutorService)
}
