// Package config loads datarecords' configuration from environment
// variables, with an optional YAML file providing defaults underneath
// them, grounded on the teacher's internal/config package (FileConfig +
// env.go helpers).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig is spec §6's server.* keys.
type ServerConfig struct {
	Host  string
	Ports PortsConfig
}

// PortsConfig is spec §6's server.ports.* keys.
type PortsConfig struct {
	HTTP int
	SRT  []int // the configured universe the port pool reserves from
}

// RecorderConfig is spec §6's recorder.* keys.
type RecorderConfig struct {
	Timeout    time.Duration // credential lifetime / SRT listen timeout ceiling
	Window     time.Duration // +/- search window around "now" for schedule lookup
	FFmpegPath string        // path to the ffmpeg binary pipelines exec
	GraceKill  time.Duration // SIGTERM-to-SIGKILL grace period on pipeline teardown
}

// EmishowsConfig is spec §6's emishows.http.* keys (the remote schedule
// service).
type EmishowsConfig struct {
	HTTP HTTPTargetConfig
}

// HTTPTargetConfig addresses a remote HTTP service.
type HTTPTargetConfig struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// DatarecordsS3Config is spec §6's datarecords.s3.* keys (the object
// store backing the records catalog).
type DatarecordsS3Config struct {
	Secure   bool
	Host     string
	Port     int
	User     string
	Password string
	Bucket   string
}

// Config is the fully resolved configuration.
type Config struct {
	Server     ServerConfig
	Recorder   RecorderConfig
	Emishows   EmishowsConfig
	S3         DatarecordsS3Config
	LogLevel   string
}

// FileConfig is the optional YAML file shape, merged underneath
// environment variables (env wins on every key it sets).
type FileConfig struct {
	LogLevel string `yaml:"logLevel,omitempty"`

	Server struct {
		Host  string `yaml:"host,omitempty"`
		Ports struct {
			HTTP int   `yaml:"http,omitempty"`
			SRT  []int `yaml:"srt,omitempty"`
		} `yaml:"ports,omitempty"`
	} `yaml:"server,omitempty"`

	Recorder struct {
		Timeout    string `yaml:"timeout,omitempty"`
		Window     string `yaml:"window,omitempty"`
		FFmpegPath string `yaml:"ffmpegPath,omitempty"`
		GraceKill  string `yaml:"graceKill,omitempty"`
	} `yaml:"recorder,omitempty"`

	Emishows struct {
		HTTP struct {
			Scheme string `yaml:"scheme,omitempty"`
			Host   string `yaml:"host,omitempty"`
			Port   int    `yaml:"port,omitempty"`
			Path   string `yaml:"path,omitempty"`
		} `yaml:"http,omitempty"`
	} `yaml:"emishows,omitempty"`

	Datarecords struct {
		S3 struct {
			Secure   *bool  `yaml:"secure,omitempty"`
			Host     string `yaml:"host,omitempty"`
			Port     int    `yaml:"port,omitempty"`
			User     string `yaml:"user,omitempty"`
			Password string `yaml:"password,omitempty"`
			Bucket   string `yaml:"bucket,omitempty"`
		} `yaml:"s3,omitempty"`
	} `yaml:"datarecords,omitempty"`
}

// Load builds a Config. When path is non-empty, the file's values seed the
// defaults that environment variables are then layered on top of; an
// absent path is not an error, matching the teacher's "config file is
// optional" stance.
func Load(path string) (Config, error) {
	var file FileConfig
	if path != "" {
		if err := loadFile(path, &file); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		LogLevel: ParseString("DATARECORDS_LOG_LEVEL", orDefault(file.LogLevel, "info")),
		Server: ServerConfig{
			Host: ParseString("DATARECORDS_SERVER_HOST", orDefault(file.Server.Host, "0.0.0.0")),
			Ports: PortsConfig{
				HTTP: ParseInt("DATARECORDS_SERVER_PORTS_HTTP", orDefaultInt(file.Server.Ports.HTTP, 10800)),
				SRT:  ParseIntList("DATARECORDS_SERVER_PORTS_SRT", orDefaultIntSlice(file.Server.Ports.SRT, []int{10900, 10901, 10902, 10903})),
			},
		},
		Recorder: RecorderConfig{
			Timeout:    ParseDuration("DATARECORDS_RECORDER_TIMEOUT", orDefaultDuration(file.Recorder.Timeout, 30*time.Second)),
			Window:     ParseDuration("DATARECORDS_RECORDER_WINDOW", orDefaultDuration(file.Recorder.Window, time.Hour)),
			FFmpegPath: ParseString("DATARECORDS_RECORDER_FFMPEG_PATH", orDefault(file.Recorder.FFmpegPath, "ffmpeg")),
			GraceKill:  ParseDuration("DATARECORDS_RECORDER_GRACE_KILL", orDefaultDuration(file.Recorder.GraceKill, 5*time.Second)),
		},
		Emishows: EmishowsConfig{
			HTTP: HTTPTargetConfig{
				Scheme: ParseString("DATARECORDS_EMISHOWS_HTTP_SCHEME", orDefault(file.Emishows.HTTP.Scheme, "http")),
				Host:   ParseString("DATARECORDS_EMISHOWS_HTTP_HOST", orDefault(file.Emishows.HTTP.Host, "localhost")),
				Port:   ParseInt("DATARECORDS_EMISHOWS_HTTP_PORT", orDefaultInt(file.Emishows.HTTP.Port, 10500)),
				Path:   ParseString("DATARECORDS_EMISHOWS_HTTP_PATH", orDefault(file.Emishows.HTTP.Path, "")),
			},
		},
		S3: DatarecordsS3Config{
			Secure:   ParseBool("DATARECORDS_S3_SECURE", orDefaultBoolPtr(file.Datarecords.S3.Secure, false)),
			Host:     ParseString("DATARECORDS_S3_HOST", orDefault(file.Datarecords.S3.Host, "localhost")),
			Port:     ParseInt("DATARECORDS_S3_PORT", orDefaultInt(file.Datarecords.S3.Port, 10000)),
			User:     ParseString("DATARECORDS_S3_USER", orDefault(file.Datarecords.S3.User, "readwrite")),
			Password: ParseString("DATARECORDS_S3_PASSWORD", file.Datarecords.S3.Password),
			Bucket:   ParseString("DATARECORDS_S3_BUCKET", orDefault(file.Datarecords.S3.Bucket, "datarecords")),
		},
	}

	return cfg, nil
}

func loadFile(path string, out *FileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultIntSlice(v, def []int) []int {
	if len(v) == 0 {
		return def
	}
	return v
}

func orDefaultDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func orDefaultBoolPtr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
