package core

// process runs the commit lanes of an out-of-order core. While a load or
// store waits at the head, the lanes look further into the reorder buffer to
// issue more accesses and to execute compute instructions ahead of time.
// Instructions executed ahead retire together once their entry reaches the
// head.
func (c *Comp) process() {
	ahead := 0

	for j := 0; j < c.issueWidth; j++ {
		if len(c.rob) == 0 {
			c.idle()
			continue
		}

		head := &c.rob[0]

		if head.isMemory() {
			if head.ready {
				c.psm.ResetIdle()
				c.commitHead()
				c.countCommit()

				continue
			}

			if !head.issued {
				if !c.issue(head) {
					c.countMemFull()
				}

				continue
			}
		} else {
			c.oooExecuted -= head.doneOoO
			head.doneOoO = 0
			c.psm.ResetIdle()

			if head.insts == 0 {
				head.ready = true
				c.commitHead()
			}
		}

		if len(c.rob) == 0 {
			c.idle()
			continue
		}

		if c.oooExecuted >= ROBSize {
			c.countROBFull()
			c.idle()

			continue
		}

		head = &c.rob[0]

		if !head.isMemory() && head.insts > 0 {
			head.commitInst()
			c.oooExecuted++
			c.countCommit()

			continue
		}

		if !head.isMemory() || head.ready {
			continue
		}

		ahead++
		if ahead >= len(c.rob) {
			break
		}

		e := &c.rob[ahead]

		switch {
		case e.isMemory() && !e.issued:
			if !c.issue(e) {
				c.countMemFull()
			}
		case !e.isMemory() && e.insts > 0:
			e.commitInst()
			c.oooExecuted++
			c.countCommit()
		default:
			j--
		}
	}
}

// inOrderProcess runs the commit lanes of an in-order core. Nothing passes a
// stalled head.
func (c *Comp) inOrderProcess() {
	for j := 0; j < c.issueWidth; j++ {
		if len(c.rob) == 0 {
			c.idle()
			continue
		}

		head := &c.rob[0]

		if !head.isMemory() {
			if head.insts > 0 {
				head.insts--
				c.countCommit()
			} else {
				head.ready = true
				c.commitHead()
			}

			continue
		}

		switch {
		case head.ready:
			c.psm.ResetIdle()
			c.commitHead()
			c.countCommit()
		case !head.issued:
			if !c.issue(head) {
				c.countMemFull()
			}
		default:
			c.countROBFull()
			c.idle()
		}
	}
}

// issue hands a load or store to the switch.
func (c *Comp) issue(e *entry) bool {
	if !c.sw.EnqueueCoreMemRequest(c.id, e.addr, e.isRead()) {
		return false
	}

	e.issued = true
	e.issuedAt = c.ticks

	return true
}
