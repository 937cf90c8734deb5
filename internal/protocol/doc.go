// Package protocol defines the JSON frames exchanged over the relay socket.
//
// Every frame is a single object carrying a "type" discriminator. Inbound
// frames decode into one of UserJoin, PageChange, PhotoUpload or ResetApp;
// anything else is reported as ErrMalformed. Outbound frames are built with
// the New* constructors so the discriminator is always set.
package protocol
