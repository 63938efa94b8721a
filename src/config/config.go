package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-shellwords"
)

const (
	EnvFileEnvVar = "SCREEN_TOOL_ENV"

	GrabberMaim    = "maim"
	GrabberBuiltin = "builtin"

	DefaultDisplay       = ":0.0"
	DefaultFramerate     = 30
	DefaultPreviewSize   = 200
	DefaultCaptureHotkey = "Ctrl+Shift+S"
	DefaultRecordHotkey  = "Ctrl+Shift+R"
)

type LoadOptions struct {
	EnvFileOverride   string
	OutputDirOverride string
	GrabberOverride   string
	LogLevelOverride  string
}

type Config struct {
	Display string

	SelectorCommand    string
	GrabberCommand     string
	EncoderCommand     string
	AudioListerCommand string

	Grabber string

	Framerate        int
	Preset           string
	VideoCodec       string
	AudioCodec       string
	AudioBitrate     string
	AudioSource      string
	DisableAudio     bool
	EncoderExtraArgs []string

	OutputDir       string
	CaptureHotkey   string
	RecordHotkey    string
	CopyToClipboard bool
	PreviewSize     int

	EnableFileLogging bool
	LogLevel          string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) explicit --env file, 2) .env next to the executable,
	// 3) the file named by SCREEN_TOOL_ENV. Process env is never overwritten.
	if envPath := resolveEnvPath(opts); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	extra, err := shellwords.Parse(os.Getenv("ENCODER_EXTRA_ARGS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENCODER_EXTRA_ARGS: %w", err)
	}

	cfg := &Config{
		Display:            getEnvWithDefault("DISPLAY", DefaultDisplay),
		SelectorCommand:    getEnvWithDefault("SELECTOR_CMD", "slop"),
		GrabberCommand:     getEnvWithDefault("GRABBER_CMD", "maim"),
		EncoderCommand:     getEnvWithDefault("ENCODER_CMD", "ffmpeg"),
		AudioListerCommand: getEnvWithDefault("AUDIO_LISTER_CMD", "pactl"),
		Grabber:            resolveGrabber(firstNonEmpty(opts.GrabberOverride, os.Getenv("GRABBER"))),
		Framerate:          getPositiveInt("FRAMERATE", DefaultFramerate),
		Preset:             getEnvWithDefault("PRESET", "ultrafast"),
		VideoCodec:         getEnvWithDefault("VIDEO_CODEC", "libx264"),
		AudioCodec:         getEnvWithDefault("AUDIO_CODEC", "aac"),
		AudioBitrate:       getEnvWithDefault("AUDIO_BITRATE", "128k"),
		AudioSource:        strings.TrimSpace(os.Getenv("AUDIO_SOURCE")),
		DisableAudio:       getBool("DISABLE_AUDIO"),
		EncoderExtraArgs:   extra,
		OutputDir:          firstNonEmpty(strings.TrimSpace(opts.OutputDirOverride), os.Getenv("OUTPUT_DIR"), defaultOutputDir()),
		CaptureHotkey:      getEnvWithDefault("CAPTURE_HOTKEY", DefaultCaptureHotkey),
		RecordHotkey:       getEnvWithDefault("RECORD_HOTKEY", DefaultRecordHotkey),
		CopyToClipboard:    getBool("COPY_TO_CLIPBOARD"),
		PreviewSize:        getPositiveInt("PREVIEW_SIZE", DefaultPreviewSize),
		EnableFileLogging:  getBool("ENABLE_FILE_LOGGING"),
		LogLevel:           strings.ToLower(firstNonEmpty(opts.LogLevelOverride, os.Getenv("LOG_LEVEL"), "info")),
	}

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.EnvFileOverride); p != "" {
		return p
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveGrabber(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case GrabberBuiltin, "internal", "go":
		return GrabberBuiltin
	default:
		return GrabberMaim
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	pictures := filepath.Join(home, "Pictures")
	if st, err := os.Stat(pictures); err == nil && st.IsDir() {
		return pictures
	}
	return home
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
