// Command afisha ingests cinema showtimes. It scrapes the configured theater
// sites, reconciles titles against the local replica of the state film
// register, caches posters, and stores the showings.
package main
