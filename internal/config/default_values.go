package config

const (
	DefaultTimerPreset = 1

	DefaultAudioVolume = 0.5

	DefaultQuoteIntervalSeconds = 300

	DefaultStorageMaxImageKB = 4096
	DefaultStorageQuotaMB    = 64
	DefaultStorageLogMaxMB   = 20
)
