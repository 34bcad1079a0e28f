package dsort

import (
	"runtime"

	"github.com/spf13/viper"
)

func loadConfig() {
	viper.SetConfigName("dsortrc")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.dsort")

	setupDefaults()

	viper.ReadInConfig()

	viper.SetEnvPrefix("dsort")
	viper.AutomaticEnv()
}

func setupDefaults() {
	defaultSettings := map[string]interface{}{
		"sample_budget":   64,                // Sample keys drawn per input chunk
		"partitions":      0,                 // Output chunk count; 0 means one per worker
		"batch_size":      0,                 // Split/merge fan-in ceiling; 0 means max(2, worker_count)
		"max_concurrency": 500,               // Maximum number of concurrently executing nodes
		"worker_count":    runtime.NumCPU(),  // Workers known to the local cluster
		"cache_size":      4096,              // Materialized results kept by the executor
		"verbose":         false,
	}
	for key, value := range defaultSettings {
		viper.SetDefault(key, value)
	}

	aliases := map[string]string{
		"verbose": "v",
	}
	for key, alias := range aliases {
		viper.RegisterAlias(alias, key)
	}
}
