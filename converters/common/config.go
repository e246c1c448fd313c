package common

// ConversionConfig stores configuration options for the conversion process.
type ConversionConfig struct {
	TableName string // Label used when the input does not name its own table
	Verbose   bool   // Enable detailed logging
	InputPath string // Path to the input file, used for labels and log lines
}
