// Package instagram provides a client for the Instagram private API.
//
// The client covers the small surface this tool needs: login and session
// probing, resolving a post URL to its media identifier, listing the accounts
// that liked a post, fetching extended profiles, and sending direct messages.
//
// Every failure is returned as an *Error carrying a Kind from a closed set.
// The translation from HTTP status codes and API payloads to kinds happens in
// exactly one place (Client.classify), so the rest of the application reasons
// about kinds and never inspects error text.
package instagram
