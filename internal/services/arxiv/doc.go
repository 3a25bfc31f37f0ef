// Package arxiv fetches the recent-papers listing that seeds each run.
//
// The listing endpoint paginates irregularly: the plain /recent page
// returns a partial window, and a second request with explicit
// skip/show parameters returns a wider window with overlap. Fetch hides
// both requests and the de-duplication behind one idempotent call, so
// the pipeline only ever sees a single ordered, unique sequence.
package arxiv
