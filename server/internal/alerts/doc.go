// Package alerts delivers fatal-reading notifications to external
// messaging targets.
//
// Notifier fans one text message out to every configured target. Two target
// types are supported: "telegram" (Bot API sendMessage, token resolved from
// the environment) and "http" (JSON POST to a webhook URL). Delivery is
// best-effort: failures are logged and never propagate to the caller, and
// nothing is retried.
package alerts
