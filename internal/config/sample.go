package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# qupid configuration
version: "1.0"

# Analysis service
backend:
  # Base URL of the service
  endpoint: http://localhost:5000
  # Path of the analyze endpoint
  analyze_path: /analyze-run
  # Multipart field the screenshots are sent under
  field_name: files
  # Request timeout, 0 waits forever
  timeout: 120s
  user_agent: qupid-cli

# Screenshot discovery
upload:
  # Accepted image types
  extensions: [".png", ".jpg", ".jpeg"]
  # Descend into subdirectories when a directory is given
  recursive: false
  # Quiet period before the watch command rescans a directory
  watch_debounce: 300ms

session:
  # Ignore the result of a run that was superseded by a newer one.
  # When false, whichever run finishes last is shown.
  discard_stale: false

output:
  # text, json or markdown
  default_format: text
  # auto, always or never
  color_mode: auto
  # qupid, high-contrast or minimal
  theme: qupid
  verbose: false
  no_emoji: false
  # Directory the trajectory plot is saved to, empty to skip
  plot_dir: ""

# Local stand-in service (qupid stub)
stub:
  addr: 127.0.0.1:5000
  # YAML or JSON file with the result to return, empty for the built-in one
  fixture: ""
  # Artificial delay before answering
  latency: 0s
  # Answer every request with a 500 carrying this error message
  fail_with: ""
  allowed_origins: ["*"]
`
}

// MinimalSampleConfig returns a configuration with only the essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
backend:
  endpoint: http://localhost:5000
  timeout: 120s
output:
  default_format: text
`
}
