// Package api assembles the forum's HTTP surface: login, topics, replies,
// courses, health, and metrics, behind the soft authenticator and route
// policy middlewares.
package api
