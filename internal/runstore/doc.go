// Package runstore persists solver runs and the layouts they find.
//
// A run row is created when a search starts (status "running") and
// completed once it stops, with the candidate count, solution count and
// duration. Each solution is stored as tab-separated layout text keyed by
// its discovery ordinal.
//
// The tables are created by the migrations package; open the database with
// database.Open and call Migrate before using SQLiteRepository.
package runstore
