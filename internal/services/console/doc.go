// Package console hosts the Sikiya admin console: a server-rendered HTTP
// surface over the newsroom REST API.
//
// Requests under /admin are protected by the access guard. Page data loads
// concurrently with the guard's verification; nothing reaches the browser
// until the operator is confirmed as an administrator.
package console
