package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a .docvault.kdl file under
// projectRoot. A missing file returns (nil, nil) so the caller can fall
// back to Default.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".docvault.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .docvault.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content), projectRoot)
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		if filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Clean(cfg.Project.Root)
		} else {
			cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
		}
	} else if abs, err := filepath.Abs(projectRoot); err == nil {
		cfg.Project.Root = abs
	}

	return cfg, nil
}

func parseKDL(content, projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .docvault.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			parseIndexNode(cfg, n)
		case "converters":
			parseConvertersNode(cfg, n)
		case "image":
			parseImageNode(cfg, n)
		case "runtime":
			parseRuntimeNode(cfg, n)
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

func parseIndexNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Index.MaxFileSize = sz
				}
			}
		case "max_total_size_mb":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxTotalSizeMB = int64(v)
			}
		case "max_file_count":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileCount = v
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.FollowSymlinks = b
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.RespectGitignore = b
			}
		case "recursive":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.Recursive = b
			}
		}
	}
}

func parseConvertersNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		list := collectStringArgs(cn)
		if len(list) == 0 {
			continue
		}
		switch nodeName(cn) {
		case "native_markdown_types":
			cfg.Converters.NativeMarkdown = list
		case "plain_text_types":
			cfg.Converters.PlainText = list
		case "code_types":
			cfg.Converters.Code = list
		case "structured_types":
			cfg.Converters.Structured = list
		case "xmind_types":
			cfg.Converters.XMind = list
		case "image_types":
			cfg.Converters.Image = list
		case "video_types":
			cfg.Converters.Video = list
		case "html_types":
			cfg.Converters.HTML = list
		case "diagram_types":
			cfg.Converters.Diagram = list
		}
	}
}

func parseImageNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "provider_primary":
			if s, ok := firstStringArg(cn); ok {
				cfg.Image.ProviderPrimary = s
			}
		case "provider_chain":
			if list := collectStringArgs(cn); len(list) > 0 {
				cfg.Image.ProviderChain = list
			}
		case "tesseract_lang":
			if s, ok := firstStringArg(cn); ok {
				cfg.Image.TesseractLang = s
			}
		case "enable_front_matter":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Image.EnableFrontMatter = b
			}
		case "llm_timeout_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Image.LLMTimeoutMs = v
			}
		}
	}
}

func parseRuntimeNode(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "worker_pool_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Runtime.WorkerPoolSize = v
			}
		case "session_history_capacity":
			if v, ok := firstIntArg(cn); ok {
				cfg.Runtime.SessionHistoryCap = v
			}
		case "session_grace_seconds":
			if v, ok := firstIntArg(cn); ok {
				cfg.Runtime.SessionGraceSeconds = v
			}
		case "probe_timeout_sec":
			if v, ok := firstIntArg(cn); ok {
				cfg.Runtime.ProbeTimeoutSec = v
			}
		}
	}
}

// Helper functions leveraging the kdl-go document model.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}

func init() {
	// kdl-go logs parse warnings through the standard logger; keep the
	// default flags so timestamps line up with the rest of docvault's
	// stdlib logging.
	log.SetFlags(log.LstdFlags)
}

func getDefaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",
		"**/node_modules/**",
		"**/__pycache__/**",
		"**/*.assets/**",
		"**/.venv/**",
		"**/venv/**",
		"**/dist/**",
		"**/build/**",
		"**/.DS_Store",
		"**/Thumbs.db",
	}
}
