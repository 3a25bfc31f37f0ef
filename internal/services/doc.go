// Package services holds the context helpers shared by the pipeline
// stages and external integrations. They stamp paper identifiers, stage
// names, and run IDs onto a context so logging can tag every line with
// the work item that produced it.
package services
