// Package calendar implements the remote collection client for Google
// Calendar. It lists event pages with either a syncToken (incremental) or
// a time window (full sync), and maps API events into domain form.
package calendar
