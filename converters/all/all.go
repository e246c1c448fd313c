package all

import (
	// Import all the converters so they register themselves
	_ "github.com/clarita-9850/dmxload/converters/dmx"
)
