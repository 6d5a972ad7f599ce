package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"condish/internal/api"
	"condish/internal/config"
	"condish/internal/inspection"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, apiFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) apiBind(cfg *config.Config) string {
	if c.apiFlag != nil {
		if bind := strings.TrimSpace(*c.apiFlag); bind != "" {
			return bind
		}
	}
	return cfg.Paths.APIBind
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withClient runs fn against the daemon API and turns connection failures
// into a hint to start the daemon.
func (c *commandContext) withClient(cmd *cobra.Command, fn func(context.Context, *api.Client) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	bind := c.apiBind(cfg)
	client, err := api.NewClient(bind, cfg.Paths.APIToken)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fn(ctx, client); err != nil {
		if api.IsUnavailable(err) {
			return fmt.Errorf("connect to daemon at %s: %w; start it with `condishd`", bind, err)
		}
		return err
	}
	return nil
}

// emit prints v as JSON when --json is set and runs render otherwise.
func (c *commandContext) emit(cmd *cobra.Command, v any, render func(out io.Writer, colorize bool)) error {
	if c.jsonOutput() {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	out := cmd.OutOrStdout()
	render(out, shouldColorize(out))
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// readImage loads an image or document from disk. The MIME type comes from
// the extension, falling back to content sniffing.
func readImage(path string) (inspection.Image, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return inspection.Image{}, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return inspection.Image{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return inspection.Image{}, fmt.Errorf("%s is empty", path)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(expanded)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return inspection.Image{Data: data, MimeType: mimeType}, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
