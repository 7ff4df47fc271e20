// Package simulate produces synthetic vital-sign readings and posts them
// to vitaltrace-server.
//
// Generator draws values from realistic ranges (heart rate 60–140 bpm,
// SpO2 85–100%, temperature 36.0–40.5°C) that regularly cross the fatal
// thresholds, so a running simulator exercises the whole fan-out path.
package simulate
