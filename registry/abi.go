package registry

// REGISTRY_ABI covers the registry methods this client uses.
const REGISTRY_ABI = `[
  {"type":"function","name":"register","stateMutability":"payable",
   "inputs":[{"name":"name","type":"string"}],"outputs":[]},
  {"type":"function","name":"setRecord","stateMutability":"nonpayable",
   "inputs":[{"name":"name","type":"string"},{"name":"record","type":"string"}],"outputs":[]},
  {"type":"function","name":"getAllNames","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"string[]"}]},
  {"type":"function","name":"records","stateMutability":"view",
   "inputs":[{"name":"","type":"string"}],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"domains","stateMutability":"view",
   "inputs":[{"name":"","type":"string"}],"outputs":[{"name":"","type":"address"}]}
]`
