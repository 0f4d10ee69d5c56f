package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/n9te9/federation-gateway/registry"
)

type registryServer struct {
	registry        *registry.Registry
	graphqlEndpoint string
}

func (s *registryServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/schema/registration":
		if req.Method == http.MethodPost {
			s.registry.RegisterGateway(w, req)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type Graph struct {
	Name string
	Host string
	SDL  string
}

const defaultRegistryConfigPath = "registry.yaml"

type registryConfig struct {
	Graphs []struct {
		Name       string `yaml:"name"`
		Host       string `yaml:"host"`
		SchemaFile string `yaml:"schema_file"`
	} `yaml:"graphs"`
}

// LoadRegistryGraphs reads the seed subgraph set from registry.yaml,
// resolving each graph's SDL from its schema_file path.
func LoadRegistryGraphs() ([]*Graph, error) {
	f, err := os.Open(defaultRegistryConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", defaultRegistryConfigPath, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", defaultRegistryConfigPath, err)
	}

	var cfg registryConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", defaultRegistryConfigPath, err)
	}

	graphs := make([]*Graph, 0, len(cfg.Graphs))
	for _, g := range cfg.Graphs {
		sdl, err := os.ReadFile(g.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %q for graph %q: %w", g.SchemaFile, g.Name, err)
		}
		graphs = append(graphs, &Graph{Name: g.Name, Host: g.Host, SDL: string(sdl)})
	}
	return graphs, nil
}

func RunRegistry(graphs []*Graph) error {
	if len(graphs) == 0 {
		return errors.New("no graphs provided")
	}

	reg := registry.NewRegistry()

	seed := make([]registry.RegistrationGraph, len(graphs))
	for i, g := range graphs {
		seed[i] = registry.RegistrationGraph{Name: g.Name, Host: g.Host, SDL: g.SDL}
	}
	if err := reg.Seed(seed); err != nil {
		return fmt.Errorf("failed to seed registry: %w", err)
	}

	reg.Start()

	s := &registryServer{
		registry:        reg,
		graphqlEndpoint: "/graphql",
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: s,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt, os.Kill)
	defer stop()
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}
