// Package timezone anchors "today" for booking rules.
//
// Stay dates are calendar dates with no time of day. They are stored in DATE columns and carried
// in Go as midnight UTC (see DateOf and ParseDate). Which calendar date it is right now depends on
// APP_TIMEZONE: a guest in Kampala at 01:00 local time is already on the next day. Today therefore
// reads the wall clock in the app location and then drops the time.
//
// Timestamps such as created_at are formatted in the app location for responses.
package timezone
