// Package notion loads day-valued records from a Notion database.
//
// Each page of the database is one event. Its date comes from a date
// property; its value comes from an optional formula, number or checkbox
// property. Several pages on one date add up, so two 1.5 hour sessions make
// a 3 hour day rather than the last page replacing the first. Without a
// value property every page counts as 1, so the day value is the number of
// pages on that date.
//
//	client := notion.NewClient(token, c, time.Hour)
//	days, err := client.Load(ctx, notion.Query{
//	    DatabaseID:    "a8aec43384f447ed84390e8e42c2e089",
//	    DateProperty:  "Datetime",
//	    ValueProperty: "Hours",
//	    Filter:        "Type#Workout",
//	}, false)
//
// Results are paged with start_cursor until has_more is false; requests are
// paced to stay under the API's rate limit.
package notion
