//go:build unix

package busbridge

import "golang.org/x/sys/unix"

// PollEventsFromUnix translates poll(2) revents bits into a PollEvents
// mask. POLLERR is folded into PollHangup: both mean the descriptor is
// done for, and the bridged model only distinguishes "hung up" from
// "still usable".
func PollEventsFromUnix(revents int16) PollEvents {
	var e PollEvents
	if revents&unix.POLLIN != 0 {
		e |= PollReadable
	}
	if revents&unix.POLLOUT != 0 {
		e |= PollWritable
	}
	if revents&(unix.POLLHUP|unix.POLLERR) != 0 {
		e |= PollHangup
	}
	return e
}

// UnixFromPollEvents translates a PollEvents mask into poll(2) events
// bits, for host loops that register interest via poll/epoll directly.
func UnixFromPollEvents(e PollEvents) int16 {
	var revents int16
	if e&PollReadable != 0 {
		revents |= unix.POLLIN
	}
	if e&PollWritable != 0 {
		revents |= unix.POLLOUT
	}
	if e&PollHangup != 0 {
		revents |= unix.POLLHUP
	}
	return revents
}
