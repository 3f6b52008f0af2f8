// Package webhooks receives Brevo marketing webhook deliveries and turns
// them into "object changed" commits for the orchestration layer.
//
// A delivery goes through: probe detection, method check, payload
// extraction, optional verification, optional burst control and list
// membership filtering, and one commit per notified email. Accepted
// deliveries always answer {"success":true}.
package webhooks
