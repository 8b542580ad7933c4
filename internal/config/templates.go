package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Chartline Configuration

[pipeline]
# Arrow number given to the most recent completed candle
start_number = 1
# Less extreme older / newer neighbors a swing point needs
left_required = 1
right_required = 1
# Candles after the receiver that must exist to confirm a trendline (1-5)
main_trendline_position = 1
# Minimum vertical pixel distance between sender and receiver: 0, 10, 20, 50, 100, 200
distance_threshold = 0
# Cap on exported pending contracts (0 = no cap)
num_contracts = 0
# Allow trendlines whose receiver is the last extremum of its kind
allow_trailing = false

[extract]
# Candle body colors on the enhanced chart
red_color = "#ff0000"
green_color = "#00ff00"
# Per-channel color tolerance (0-255)
tolerance = 60
# Regions smaller than this many pixels are ignored
min_area = 6
# Region finder: "label" (pure Go) or "opencv" (build with -tags gocv)
finder = "label"
# Chart area inside the screenshot (crop_width = 0 uses the whole image)
crop_x = 0
crop_y = 0
crop_width = 0
crop_height = 0

[store]
# Persist every run to SQLite
enabled = true
# path = "~/.config/chartline/chartline.db"

[logging]
level = "info"
console = true
file = true
max_size = 100
max_backups = 7
max_age = 30

[batch]
# Concurrent snapshots (0 = one per CPU)
workers = 0
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
