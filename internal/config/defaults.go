package config

// Storage backends.
const (
	StorageYandex    = "yandex"
	StorageDirectory = "directory"
)

const (
	defaultConfigPath            = "~/.config/tubelift/config.toml"
	defaultTempDir               = "~/.local/share/tubelift/tmp"
	defaultLogDir                = "~/.local/share/tubelift/logs"
	defaultAPIBind               = "127.0.0.1:7488"
	defaultFetchFormat           = "bestvideo+bestaudio/best"
	defaultMergeOutputFormat     = "mp4"
	defaultTitleMaxLength        = 200
	defaultStorageBackend        = StorageYandex
	defaultUploadDir             = "/YouTubeDownloads"
	defaultYandexBaseURL         = "https://cloud-api.yandex.net/v1/disk"
	defaultStorageRequestTimeout = 60
	defaultDirectoryPath         = "~/.local/share/tubelift/published"
	defaultNtfyRequestTimeout    = 10
	defaultProgressStep          = 5
	defaultEventTextFile         = "upload_log.txt"
	defaultEventDatabase         = "events.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir: defaultTempDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Fetcher: Fetcher{
			Format:            defaultFetchFormat,
			MergeOutputFormat: defaultMergeOutputFormat,
			TitleMaxLength:    defaultTitleMaxLength,
		},
		Storage: Storage{
			Backend:        defaultStorageBackend,
			UploadDir:      defaultUploadDir,
			YandexBaseURL:  defaultYandexBaseURL,
			RequestTimeout: defaultStorageRequestTimeout,
			DirectoryPath:  defaultDirectoryPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Workflow: Workflow{
			ProgressStep: defaultProgressStep,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
