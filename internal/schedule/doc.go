// Package schedule runs feedcaster on a timetable for `feedcaster serve`.
//
// Supported schedule strings:
//   - Cron expressions: 5-field (min hour dom mon dow), e.g. "0 * * * *".
//   - Cron descriptors: "@hourly", "@daily", "@every 55m".
//   - Intervals: Go durations ("55m", "2h30m") or HH:MM ("01:30" = 90 minutes).
//
// Runs never overlap: a tick that fires while the previous run is still
// publishing is skipped and logged.
package schedule
