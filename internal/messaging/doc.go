// Package messaging defines the chat boundary: inbound events carrying a
// user identity, and the Messenger interface flows use to reply. The
// concrete transport lives in the socket subpackage; flows never see it.
package messaging
